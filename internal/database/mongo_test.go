package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMongoDatabaseName(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017/soullog":                        "soullog",
		"mongodb://localhost:27017/journal_dev?retryWrites=true":   "journal_dev",
		"mongodb+srv://u:p@cluster0.mongodb.net/?retryWrites=true": "soullog",
		"mongodb://localhost:27017":                                "soullog",
		"":                                                         "soullog",
	}
	for uri, want := range tests {
		assert.Equal(t, want, mongoDatabaseName(uri), uri)
	}
}
