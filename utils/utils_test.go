package utils

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenUuidFromStrings(t *testing.T) {
	a := GenUuidFromStrings("asset-1", "Main Market")
	b := GenUuidFromStrings("Main Market", "asset-1")
	assert.Equal(t, a, b, "order must not change the id")

	c := GenUuidFromStrings("asset-2", "Main Market")
	assert.NotEqual(t, a, c)

	parsed, err := uuid.FromString(a)
	assert.NoError(t, err)
	assert.Equal(t, uuid.V3, parsed.Version())

	empty := GenUuidFromStrings()
	_, err = uuid.FromString(empty)
	assert.NoError(t, err)
}
