package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/skillswap-api/internal/config"
)

func newTestService(secret string) *CloudinaryService {
	cfg := &config.Config{}
	cfg.CloudinaryConfig.APISecret = secret
	return &CloudinaryService{cfg: cfg}
}

func TestGenerateSignature_Deterministic(t *testing.T) {
	svc := newTestService("secret")

	params := map[string]string{
		"timestamp":     "1700000000",
		"folder":        "skillswap/portfolio",
		"upload_preset": "skillswap_portfolio",
	}

	first := svc.GenerateSignature(params)
	second := svc.GenerateSignature(params)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.Len(t, first, 40) // hex-представление SHA-1
}

func TestGenerateSignature_DependsOnParamsAndSecret(t *testing.T) {
	svc := newTestService("secret")

	base := svc.GenerateSignature(map[string]string{"timestamp": "1700000000"})
	changed := svc.GenerateSignature(map[string]string{"timestamp": "1700000001"})
	assert.NotEqual(t, base, changed)

	other := newTestService("another-secret")
	assert.NotEqual(t, base, other.GenerateSignature(map[string]string{"timestamp": "1700000000"}))
}

func TestGenerateSignature_OrderIndependent(t *testing.T) {
	svc := newTestService("secret")

	// Подпись строится по отсортированным ключам, порядок в map не важен
	a := svc.GenerateSignature(map[string]string{"a": "1", "b": "2", "c": "3"})
	b := svc.GenerateSignature(map[string]string{"c": "3", "a": "1", "b": "2"})
	assert.Equal(t, a, b)
}
