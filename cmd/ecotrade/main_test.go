package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProductRequest_PriceParsedFromString(t *testing.T) {
	req, err := buildProductRequest("Lampe de bureau", "25.50", "state: good", "6 mois")
	require.NoError(t, err)
	assert.Equal(t, 25.5, req.Price)

	req, err = buildProductRequest("Chaise", "99.99", "", "1 an")
	require.NoError(t, err)
	assert.Equal(t, 99.99, req.Price)
}

func TestBuildProductRequest_RejectsInvalidPrice(t *testing.T) {
	_, err := buildProductRequest("Lampe", "abc", "", "")
	require.Error(t, err)

	_, err = buildProductRequest("Lampe", "-5", "", "")
	require.Error(t, err)

	_, err = buildProductRequest("", "10", "", "")
	require.Error(t, err)
}
