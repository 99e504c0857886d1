// Package catalog holds the fixed set of endpoints the simulator exercises
// on the target service.
package catalog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dvdk01/loadsim/internal/schema"
	"github.com/google/uuid"
)

const (
	scopesHeader = "x-user-scopes"
	contentType  = "application/json"
)

// Default returns the endpoint catalog in selection order. The create-user
// payload is derived from now once, so every create request of a run sends
// the same body unless unique is set.
func Default(now time.Time, unique bool) []schema.Endpoint {
	create := schema.Endpoint{
		Name:    "POST /users (Create User)",
		Method:  "POST",
		Path:    "/users",
		Headers: map[string]string{"Content-Type": contentType},
		Body:    userPayload(fmt.Sprintf("%d", now.UnixMilli())),
		Weight:  25,
	}
	if unique {
		create.Payload = func() []byte {
			return userPayload(fmt.Sprintf("%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8]))
		}
	}

	return []schema.Endpoint{
		{
			Name:    "GET /users (All Users)",
			Method:  "GET",
			Path:    "/users",
			Headers: map[string]string{scopesHeader: "users:read:all"},
			Weight:  40,
		},
		{
			Name:    "GET /users/:id (Single User)",
			Method:  "GET",
			Path:    "/users/1",
			Headers: map[string]string{scopesHeader: "users:read"},
			Weight:  35,
		},
		create,
	}
}

// userPayload builds the create-user JSON body. suffix only ever holds
// digits, hex and underscores, so quoting cannot produce invalid JSON.
func userPayload(suffix string) []byte {
	return fmt.Appendf(nil, `{"name":%s,"email":%s}`,
		strconv.Quote("User_"+suffix), strconv.Quote("user_"+suffix+"@example.com"))
}
