// Package secrets reads the reddit credentials file.
//
// The file holds one key:value pair per line, for example:
//
//	client_id:abc123
//	client_secret:shh
//	username:gopher
//	password:hunter2
//	user_agent:spdb/1.0 by u/gopher
package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	spdberrs "github.com/jdholdren/spdb/internal/errors"
)

// Credentials are the fields needed to authenticate as a reddit script app.
type Credentials struct {
	ClientID     string `secret:"client_id" validate:"required"`
	ClientSecret string `secret:"client_secret" validate:"required"`
	Username     string `secret:"username" validate:"required"`
	Password     string `secret:"password" validate:"required"`
	UserAgent    string `secret:"user_agent" validate:"required"`
}

// Load reads the secrets file at path into a map.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening secrets: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads key:value lines. Only the first colon splits, so values may hold
// colons of their own. Blank lines are skipped.
func Parse(r io.Reader) (map[string]string, error) {
	var (
		secrets = map[string]string{}
		scanner = bufio.NewScanner(r)
		lineNo  = 0
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key:value", lineNo)
		}
		secrets[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading secrets: %w", err)
	}

	return secrets, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("secret")
	})
	return v
}

// CredentialsFrom picks the reddit credentials out of secrets. Every field is
// required; the returned error's details name each missing key.
func CredentialsFrom(secrets map[string]string) (Credentials, error) {
	creds := Credentials{
		ClientID:     secrets["client_id"],
		ClientSecret: secrets["client_secret"],
		Username:     secrets["username"],
		Password:     secrets["password"],
		UserAgent:    secrets["user_agent"],
	}

	err := validate.Struct(creds)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]spdberrs.Detail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, spdberrs.Detail{Field: fe.Field(), Error: "is required"})
		}
		return Credentials{}, spdberrs.E("incomplete credentials", http.StatusBadRequest, details)
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("error validating credentials: %w", err)
	}

	return creds, nil
}

// LoadCredentials reads the secrets file at path and picks out the credentials.
func LoadCredentials(path string) (Credentials, error) {
	secrets, err := Load(path)
	if err != nil {
		return Credentials{}, err
	}

	return CredentialsFrom(secrets)
}
