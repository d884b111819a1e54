// Package textproc holds the deterministic text stages of the report pipeline:
// OCR text normalization, spelling correction, document-type detection and
// reference-range highlighting. Nothing here performs I/O.
package textproc
