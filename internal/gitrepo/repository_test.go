package gitrepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTzOffset(t *testing.T) {
	t.Parallel()

	east := time.FixedZone("CEST", 2*60*60)
	assert.Equal(t, "+0200", tzOffset(time.Date(2021, 1, 27, 12, 0, 0, 0, east)))

	west := time.FixedZone("EST", -5*60*60)
	assert.Equal(t, "-0500", tzOffset(time.Date(2021, 1, 27, 12, 0, 0, 0, west)))

	assert.Equal(t, "+0000", tzOffset(time.Date(2021, 1, 27, 12, 0, 0, 0, time.UTC)))
}
