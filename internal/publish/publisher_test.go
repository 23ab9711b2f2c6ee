package publish

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageSavedEventWireFormat(t *testing.T) {
	event := PageSavedEvent{
		Tenant: "acme",
		Site:   "main",
		PageID: "home",
		Title:  "Home",
		Slug:   "home",
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "home", decoded["pageId"])
	assert.Contains(t, decoded, "timestamp")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PageSaved(PageSavedEvent{}))
	p.Close()
}
