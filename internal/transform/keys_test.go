package transform

import (
	"crypto/md5" // #nosec G501
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSurrogateKey(t *testing.T) {
	sum := md5.Sum([]byte("1001#2024-01-05#100,50")) // #nosec G401
	assert.Equal(t, hex.EncodeToString(sum[:]), SurrogateKey([]string{"1001", "2024-01-05", "100,50"}))
	assert.Len(t, SurrogateKey([]string{"x"}), 32)
}

func TestSurrogateKey_OrderMatters(t *testing.T) {
	assert.NotEqual(t, SurrogateKey([]string{"a", "b"}), SurrogateKey([]string{"b", "a"}))
	assert.Equal(t, SurrogateKey([]string{"a", "b"}), SurrogateKey([]string{"a", "b"}))
}
