// Package promptbase caches consolidation results on disk so repeated
// prompts skip the fuzzy-matching pipeline.
package promptbase

import (
	"time"

	"git.mills.io/prologic/bitcask"

	"violet/logger"
)

var (
	Data *bitcask.Bitcask
)

// Init opens the cache database at path and starts the daily merge loop.
func Init(path string) {
	var err error
	Data, err = bitcask.Open(path, bitcask.WithMaxValueSize(10*1024*1024))
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}

	go func() {
		for {
			time.Sleep(24 * time.Hour)
			Merge()
		}
	}()
}

// Close flushes and closes the database.
func Close() error {
	if Data == nil {
		return nil
	}
	return Data.Close()
}

func Merge() {
	logger.Info("Merging database to reclaim space...")
	err := Data.Merge()
	if err != nil {
		logger.Error("Error merging database", "error", err)
	} else {
		logger.Info("Database merge complete.")
	}
}

// PutString stores a compressed value under the hashed key.
func PutString(key string, value string) error {
	compressedValue, err := compress([]byte(value))
	if err != nil {
		return err
	}
	return Data.Put(CacheKey(key), compressedValue)
}

// PutStringExpireHours stores a compressed value that expires.
func PutStringExpireHours(key string, value string, expire int) error {
	compressedValue, err := compress([]byte(value))
	if err != nil {
		return err
	}
	return Data.PutWithTTL(CacheKey(key), compressedValue, time.Hour*time.Duration(expire))
}

func Get(key string) ([]byte, error) {
	compressedValue, err := Data.Get(CacheKey(key))
	if err != nil {
		return nil, err
	}
	return decompress(compressedValue)
}

func Has(key string) bool {
	return Data.Has(CacheKey(key))
}

func Delete(key string) error {
	return Data.Delete(CacheKey(key))
}
