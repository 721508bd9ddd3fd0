// Package req decodes request bodies into validated values.
package req

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"smartdeals/pkg/errcodes"
)

const maxBodyBytes = 1 << 20

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

// Read decodes a JSON body of at most 1 MiB into dest and validates it.
func Read(r *http.Request, dest any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dest); err != nil {
		return failure.NewInvalidArgumentError(
			fmt.Errorf("json.Decode: %w", err).Error(),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("Invalid JSON"),
		)
	}

	if err := validate.StructCtx(r.Context(), dest); err != nil {
		return failure.NewInvalidArgumentError(
			"validation error",
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription(err.Error()),
		)
	}

	return nil
}

// Form parses a form-encoded body and requires every named field.
func Form(r *http.Request, required ...string) (url.Values, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	if err := r.ParseForm(); err != nil {
		return nil, failure.NewInvalidArgumentError(
			fmt.Errorf("r.ParseForm: %w", err).Error(),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("Invalid form"),
		)
	}

	for _, name := range required {
		if r.PostForm.Get(name) == "" {
			return nil, failure.NewInvalidArgumentError(
				"missing form field",
				failure.WithCode(errcodes.ValidationError),
				failure.WithDescription(fmt.Sprintf("field %s required", name)),
			)
		}
	}

	return r.PostForm, nil
}
