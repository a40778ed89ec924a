package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeNowIn(t *testing.T) {
	assert.Equal(t, time.UTC, TimeNowIn("").Location())
	assert.Equal(t, time.UTC, TimeNowIn("Not/AZone").Location())
}
