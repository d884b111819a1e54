// Package tesseract recognizes text in raster images with the Tesseract engine
// through gosseract.
//
// Tesseract and its language data must be installed on the host
// (apt-get install tesseract-ocr tesseract-ocr-eng, or brew install tesseract).
// The engine is only available in cgo builds; without cgo, Recognize returns
// domain.ErrEngineUnavailable.
//
// A new gosseract client is created for every call, so one Engine can be shared
// by concurrent requests.
package tesseract
