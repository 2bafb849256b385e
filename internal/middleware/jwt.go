package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/referral-go-api/internal/utils"
)

// Locals keys set by JWTProtected.
const (
	LocalCallerID   = "caller_id"
	LocalCallerRole = "caller_role"
)

// Account roles that may hold an access token.
const (
	RoleStudent = "student"
	RoleAlumni  = "alumni"
)

var errUnknownRole = errors.New("token role is neither student nor alumni")

// AccessClaims is the token payload: the account id in sub and its role.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Caller returns the account id and normalized role carried by the token.
func (c AccessClaims) Caller() (uint, string, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Subject), 10, 64)
	if err != nil || id == 0 {
		return 0, "", errors.New("token subject is not an account id")
	}

	role := normalizeRole(c.Role)
	if role != RoleStudent && role != RoleAlumni {
		return 0, "", errUnknownRole
	}
	return uint(id), role, nil
}

// JWTProtected validates HMAC bearer tokens and stores the caller's id and role in Locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendErrorWithReason(c, fiber.StatusUnauthorized, "token-missing", "authorization header missing")
		}

		scheme, tokenString, found := strings.Cut(authorization, " ")
		tokenString = strings.TrimSpace(tokenString)
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			return utils.SendErrorWithReason(c, fiber.StatusUnauthorized, "token-invalid", "invalid authorization header")
		}

		var claims AccessClaims
		if _, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}); err != nil {
			reason := "token-invalid"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "token-expired"
			}
			return utils.SendErrorWithReason(c, fiber.StatusUnauthorized, reason, "invalid token")
		}

		id, role, err := claims.Caller()
		if err != nil {
			return utils.SendErrorWithReason(c, fiber.StatusUnauthorized, "token-invalid", "invalid token claims")
		}

		c.Locals(LocalCallerID, id)
		c.Locals(LocalCallerRole, role)
		return c.Next()
	}
}

// CallerFromLocals returns the authenticated caller stored by JWTProtected.
func CallerFromLocals(c *fiber.Ctx) (uint, string, bool) {
	id, _ := c.Locals(LocalCallerID).(uint)
	role, _ := c.Locals(LocalCallerRole).(string)
	if id == 0 || role == "" {
		return 0, "", false
	}
	return id, role, true
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
