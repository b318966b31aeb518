// Package loader turns a game file into a models.World. It accepts plain-text
// ScottFree databases, the binary game images described by the catalog, and
// TI-99/4A images whose action byte-code is compiled by package ti99.
package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/catalog"
	"github.com/tatianab/scottfree/internal/gameerr"
	"github.com/tatianab/scottfree/internal/models"
)

type options struct {
	catalog *catalog.Catalog
	title   string
}

// Option configures LoadGame.
type Option func(*options)

// WithCatalog replaces the built-in recipe catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// WithTitle names the game. By default a binary image is named after the
// catalog entry that loaded it.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// LoadGame decodes data into a world ready to play. Either a complete world
// is returned or an error wrapping gameerr.ErrLoadFailed; when every
// candidate format failed the error is a *gameerr.LoadError listing them.
func LoadGame(data []byte, opts ...Option) (*models.World, error) {
	o := options{catalog: catalog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	lerr := &gameerr.LoadError{}

	w, err := ParseDatabase(data)
	if err == nil {
		err = Validate(w)
	}
	if err == nil {
		return finish(w, o.title), nil
	}
	log.Debugf("loader: not a database: %v", err)
	if w != nil {
		// It parsed as a database, so no binary dialect applies.
		lerr.Dialect = w.Dialect
		lerr.Add("database", err)
		return nil, lerr
	}

	dict, start, err := Detect(data)
	if err != nil {
		lerr.Add("signature scan", err)
		return nil, lerr
	}
	lerr.Dialect = dict.String()

	if dict == catalog.TI994A {
		w, err := loadTI994A(data, start)
		if err == nil {
			err = Validate(w)
		}
		if err != nil {
			lerr.Add(dict.String(), err)
			return nil, lerr
		}
		return finish(w, o.title), nil
	}

	for _, e := range o.catalog.ForDictionary(dict) {
		w, err := tryEntry(data, start, e)
		if err == nil {
			err = Validate(w)
		}
		if err == nil {
			log.Infof("loader: loaded %q", e.Name)
			return finish(w, o.title), nil
		}
		log.Debugf("loader: %s: %v", e.Name, err)
		lerr.Add(e.Name, err)
		var f *fatalError
		if errors.As(err, &f) {
			break
		}
	}
	if len(lerr.Candidates) == 0 {
		lerr.Add("catalog", errors.Errorf("no catalog entry for dictionary %s", dict))
	}
	return nil, lerr
}

// LoadFile reads and decodes a game file. The game is named after the file
// unless WithTitle says otherwise.
func LoadFile(path string, opts ...Option) (*models.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts = append([]Option{WithTitle(title)}, opts...)
	return LoadGame(data, opts...)
}

func finish(w *models.World, title string) *models.World {
	if title != "" {
		w.Title = title
	}
	w.Reset()
	return w
}

// fatalError marks a failure that rules out every remaining catalog entry,
// such as a header offset derived from the signature falling outside the file.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }
