package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/compliance_backend/middlewares"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/gin-gonic/gin"
)

// The middleware must seed everything the audit trail reads from context,
// the user's name included, so History rows record who acted.
func TestAuthMiddleware_SeedsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, err := utils.JwtGenerate(7, "Alex Chen", "org-1", "user")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	var gotOrg, gotName string
	var gotId int
	router := gin.New()
	router.Use(middlewares.AuthMiddleware())
	router.GET("/whoami", func(c *gin.Context) {
		ctx := c.Request.Context()
		gotOrg, _ = utils.GetOrganizationIdFromContext(ctx)
		gotId, _ = utils.GetUserIdFromContext(ctx)
		gotName, _ = utils.GetUserNameFromContext(ctx)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotOrg != "org-1" || gotId != 7 || gotName != "Alex Chen" {
		t.Fatalf("context = org %q, id %d, name %q; want org-1, 7, Alex Chen", gotOrg, gotId, gotName)
	}
}

func TestAuthMiddleware_RejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middlewares.AuthMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
