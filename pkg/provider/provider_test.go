package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// singleProvider serves a fixed batch, recording the count it was asked for.
type singleProvider struct {
	batch     []ImageRecord
	err       error
	lastCount int
}

func (s *singleProvider) Name() string { return "single" }

func (s *singleProvider) GetImageBatch(ctx context.Context, query string, count int) ([]ImageRecord, error) {
	s.lastCount = count
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func (s *singleProvider) CheckRateLimit() bool { return true }

func TestGetImageReturnsFirstOfBatchOfOne(t *testing.T) {
	p := &singleProvider{batch: []ImageRecord{
		{URL: "https://img/a", AuthorName: "ann", Source: "single"},
		{URL: "https://img/b", AuthorName: "bob", Source: "single"},
	}}

	rec, err := GetImage(context.Background(), p, "nature")

	assert.NoError(t, err)
	assert.Equal(t, 1, p.lastCount)
	if assert.NotNil(t, rec) {
		assert.Equal(t, "https://img/a", rec.URL)
	}
}

func TestGetImageEmptyBatch(t *testing.T) {
	p := &singleProvider{}

	rec, err := GetImage(context.Background(), p, "nature")

	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGetImagePropagatesError(t *testing.T) {
	boom := errors.New("upstream unavailable")
	p := &singleProvider{err: boom}

	rec, err := GetImage(context.Background(), p, "nature")

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, rec)
}
