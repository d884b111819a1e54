package textproc

import (
	"strings"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

type documentRule struct {
	keywords []string
	docType  domain.DocumentType
}

// Order matters: the first rule with a matching keyword wins.
var documentRules = []documentRule{
	{keywords: []string{"histopathology", "endometrial polyp"}, docType: domain.DocumentHistopathology},
	{keywords: []string{"cytology", "pap"}, docType: domain.DocumentPAPTest},
	{keywords: []string{"haematology", "blood count"}, docType: domain.DocumentBloodTest},
}

func ClassifyDocument(text string) domain.DocumentType {
	lowered := strings.ToLower(text)
	for _, rule := range documentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.docType
			}
		}
	}
	return domain.DocumentGeneral
}
