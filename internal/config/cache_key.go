package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TestPayloadKey returns the cache key for a test's redacted payload
func (r *CacheKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

// FolderTestsKey returns the cache key for a folder's test listing
func (r *CacheKeyStruct) FolderTestsKey(folderID string) string {
	return fmt.Sprintf("folder:%s:tests", folderID)
}

var CacheKey = NewCacheKeyStruct()
