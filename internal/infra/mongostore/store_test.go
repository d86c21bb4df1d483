//go:build unit

package mongostore

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotFound(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "bare", err: mongo.ErrNoDocuments, want: true},
		{name: "wrapped", err: errors.Wrap(mongo.ErrNoDocuments, "decode booking"), want: true},
		{name: "other", err: errors.New("connection reset"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isNotFound(tc.err))
		})
	}
}
