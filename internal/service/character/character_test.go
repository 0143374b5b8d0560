package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPersona(t *testing.T) {
	assert.False(t, Character{}.HasPersona())
	assert.False(t, Character{Slug: "  "}.HasPersona())
	assert.True(t, Character{Slug: "alice"}.HasPersona())
}

func TestEditable(t *testing.T) {
	assert.False(t, Character{Slug: "alice"}.Editable())
	assert.True(t, Character{ReferenceImageURL: "https://example.com/ref.png"}.Editable())
}
