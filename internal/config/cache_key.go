package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ResponseKey returns the cache key for a cached GET response, keyed on the
// full request URL (path + query).
func (r *CacheKeyStruct) ResponseKey(url string) string {
	return fmt.Sprintf("resp:%s", url)
}

// ResponseTypeKey returns the cache key holding the Content-Type of a cached
// response.
func (r *CacheKeyStruct) ResponseTypeKey(url string) string {
	return fmt.Sprintf("resp:%s:type", url)
}

var CacheKey = NewCacheKeyStruct()
