package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPublishRecordsMessages verifies payload capture and ID generation.
func TestPublishRecordsMessages(t *testing.T) {
	t.Parallel()

	p := New()
	id, err := p.Publish(context.Background(), "papers", map[string]any{"paper_id": "w1"})
	require.NoError(t, err)
	require.Equal(t, "memory-1", id)

	id, err = p.Publish(context.Background(), "papers", map[string]any{"paper_id": "w2"})
	require.NoError(t, err)
	require.Equal(t, "memory-2", id)

	msgs := p.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "papers", msgs[0].Topic)
	require.Equal(t, map[string]any{"paper_id": "w1"}, msgs[0].Payload)
}
