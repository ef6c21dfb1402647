package logging

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

const (
	maxDumpDepth    = 10
	maxDumpElements = 10
)

// Dump logs the structure of v at debug level, one entry per leaf with its
// path. Exported struct fields, map entries and up to ten slice elements are
// followed; cycles and nesting deeper than ten levels are cut short.
//
// Dump implements calltrace.Dumper.
func (s *Service) Dump(v any) {
	if s == nil || !s.isInitialized.Load() {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	logger := s.logger.Load()
	if !s.isInitialized.Load() || logger == nil || logger.GetLevel() > zerolog.DebugLevel {
		return
	}

	d := dumper{logger: logger, visited: make(map[uintptr]bool)}
	d.value(v, "$", 0)
}

type dumper struct {
	logger  *zerolog.Logger
	visited map[uintptr]bool
}

func (d *dumper) leaf(path, msg string) {
	d.logger.Debug().Str("path", path).Msg(msg)
}

func (d *dumper) value(v any, path string, depth int) {
	if depth > maxDumpDepth {
		d.leaf(path, "<max depth reached>")
		return
	}
	if v == nil {
		d.leaf(path, "<nil>")
		return
	}

	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Interface || val.Kind() == reflect.Pointer {
		if val.IsNil() {
			d.leaf(path, "<nil>")
			return
		}
		if val.Kind() == reflect.Pointer {
			ptr := val.Pointer()
			if d.visited[ptr] {
				d.leaf(path, "<circular reference>")
				return
			}
			d.visited[ptr] = true
		}
		val = val.Elem()
	}

	typ := val.Type()
	switch val.Kind() {
	case reflect.Struct:
		d.leaf(path, typ.String())
		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			if !field.CanInterface() {
				continue
			}
			d.value(field.Interface(), path+"."+typ.Field(i).Name, depth+1)
		}

	case reflect.Map:
		d.leaf(path, fmt.Sprintf("%s (len: %d)", typ, val.Len()))
		iter := val.MapRange()
		for iter.Next() {
			d.value(iter.Value().Interface(), fmt.Sprintf("%s[%v]", path, iter.Key().Interface()), depth+1)
		}

	case reflect.Slice, reflect.Array:
		d.leaf(path, fmt.Sprintf("%s (len: %d)", typ, val.Len()))
		for i := 0; i < val.Len() && i < maxDumpElements; i++ {
			elem := val.Index(i)
			if !elem.CanInterface() {
				continue
			}
			d.value(elem.Interface(), fmt.Sprintf("%s[%d]", path, i), depth+1)
		}
		if val.Len() > maxDumpElements {
			d.leaf(path, fmt.Sprintf("... (%d more elements)", val.Len()-maxDumpElements))
		}

	default:
		if val.CanInterface() {
			d.leaf(path, fmt.Sprintf("%v", val.Interface()))
		} else {
			d.leaf(path, fmt.Sprintf("%v", v))
		}
	}
}
