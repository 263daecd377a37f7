package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movieInput struct {
	Title  string   `flag:"title" validate:"notblank"`
	Year   int      `flag:"year" validate:"gt=0"`
	Rating float64  `flag:"rating" validate:"gte=0,lte=10"`
	Poster string   `flag:"poster" validate:"omitempty,url"`
	Update *float64 `flag:"new-rating" validate:"omitempty,gte=1,lte=10"`
}

type settings struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	Label  string `validate:"max=3"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	require.NotNil(t, v1)
	assert.Same(t, v1, v2)
}

func TestValidateStruct(t *testing.T) {
	low := 0.5

	tests := []struct {
		name    string
		input   interface{}
		message string
		fields  []string
	}{
		{
			name:  "valid movie",
			input: &movieInput{Title: "Heat", Year: 1995, Rating: 8.3, Poster: "http://img/heat.jpg"},
		},
		{
			name:    "blank title",
			input:   &movieInput{Title: "   ", Year: 1995, Rating: 8},
			message: "title must not be blank",
			fields:  []string{"title"},
		},
		{
			name:    "rating out of range",
			input:   &movieInput{Title: "Heat", Year: 1995, Rating: 11},
			message: "rating must be less than or equal to 10",
			fields:  []string{"rating"},
		},
		{
			name:    "several failures",
			input:   &movieInput{Title: "", Year: 0, Rating: -1},
			message: "title must not be blank; year must be greater than 0; rating must be greater than or equal to 0",
			fields:  []string{"title", "year", "rating"},
		},
		{
			name:    "optional pointer checked when set",
			input:   &movieInput{Title: "Heat", Year: 1995, Update: &low},
			message: "new-rating must be greater than or equal to 1",
			fields:  []string{"new-rating"},
		},
		{
			name:    "bad url",
			input:   &movieInput{Title: "Heat", Year: 1995, Poster: "not a url"},
			message: "poster must be a valid URL",
			fields:  []string{"poster"},
		},
		{
			name:    "yaml name and oneof",
			input:   &settings{Driver: "mysql"},
			message: "driver must be one of: sqlite postgres",
			fields:  []string{"driver"},
		},
		{
			name:    "string max uses characters",
			input:   &settings{Driver: "sqlite", Label: "long"},
			message: "Label must be at most 3 characters",
			fields:  []string{"Label"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())

			var verr *Error
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.fields, verr.Fields())
		})
	}
}
