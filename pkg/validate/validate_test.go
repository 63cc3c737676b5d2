package validate_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-checkout/pkg/validate"
)

func TestCustomValidator_Validate(t *testing.T) {
	t.Parallel()
	type req struct {
		Name string `validate:"required,max=4"`
	}
	v := validate.NewCustomValidator()

	require.NoError(t, v.Validate(req{Name: "Dune"}))

	err := v.Validate(req{Name: "Dune Messiah"})
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Code)

	require.Error(t, v.Validate(req{}))
}
