package cache

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/galvo/pkg/errors"
)

// Open returns the cache described by rawURL:
//
//	""  or "none"                    caching disabled
//	redis://host:6379/0              Redis (rediss:// for TLS)
//	mongodb://host:27017/galvo       MongoDB; the path names the database
//	file:///var/cache/galvo          file cache
//	/var/cache/galvo                 file cache
func Open(ctx context.Context, rawURL string) (Cache, error) {
	if rawURL == "" || rawURL == "none" {
		return NewNullCache(), nil
	}

	scheme, _, found := strings.Cut(rawURL, "://")
	if !found {
		return openFile(rawURL)
	}

	switch scheme {
	case "redis", "rediss":
		c, err := NewRedisCache(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "mongodb", "mongodb+srv":
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cache url")
		}
		db := strings.TrimPrefix(u.Path, "/")
		if db == "" {
			db = DefaultMongoDatabase
		}
		c, err := NewMongoCache(ctx, rawURL, db, DefaultMongoCollection)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "file":
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cache url")
		}
		if u.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "cache url %q has no path", rawURL)
		}
		return openFile(u.Path)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "cache scheme %q", scheme)
}

func openFile(dir string) (Cache, error) {
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}
