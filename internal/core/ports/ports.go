// Package ports declares the contracts between the report pipeline and its collaborators.
//
// Inbound ports are implemented by use cases and called by adapters (HTTP, queue consumers).
// Outbound ports are implemented by infrastructure (OCR, LLM, spelling, storage, events).
package ports
