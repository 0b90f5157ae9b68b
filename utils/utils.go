package utils

import (
	"errors"
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/text/unicode/norm"
)

func IsDuplicateKey(err error) bool {
	// Preferred: typed error
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			log.Println("Error code", e.Code)
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	// Sometimes we might get a BulkWriteException
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	// Fallback
	msg := err.Error()
	return strings.Contains(msg, "E11000 duplicate key error")
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName folds accents and case so "Éléonore D." and "eleonore d"
// produce the same search key.
func NormalizeName(name string) string {
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue // remove accent marks
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func ParseBoolQuery(value string) (*bool, error) {
	if value == "" {
		return nil, nil // not provided
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func ParseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
