// Package extract sends page images to the document-understanding
// service and turns its responses into journal entries. The service is
// treated as unreliable: transport errors and malformed payloads both
// collapse into the pipeline's single generic failure.
package extract

import "context"

// Client is the document-understanding capability: one image in, the
// raw response text out. The production implementation is GeminiClient;
// tests inject fakes.
type Client interface {
	ExtractRecords(ctx context.Context, image []byte, mimeType string) (string, error)
}
