package user

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/userapi/internal/domain"
	"github.com/simp-lee/userapi/internal/pkg"
	"github.com/simp-lee/userapi/internal/router"
)

// UserViewSet handles the REST actions of the user resource. The routes are
// generated by router.Router from the methods it implements.
type UserViewSet struct {
	svc domain.UserService
}

// NewUserViewSet creates a new UserViewSet with the given service.
func NewUserViewSet(svc domain.UserService) *UserViewSet {
	return &UserViewSet{svc: svc}
}

// List handles GET /users/.
func (v *UserViewSet) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := v.svc.ListUsers(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Create handles POST /users/.
func (v *UserViewSet) Create(c *gin.Context) {
	var req CreateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := v.svc.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, user)
}

// Retrieve handles GET /users/:id/.
func (v *UserViewSet) Retrieve(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	user, err := v.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, user)
}

// Update handles PUT /users/:id/.
func (v *UserViewSet) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := v.svc.UpdateUser(c.Request.Context(), id, req.Name, req.Email)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, user)
}

// PartialUpdate handles PATCH /users/:id/.
func (v *UserViewSet) PartialUpdate(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req PatchUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := v.svc.PatchUser(c.Request.Context(), id, req.toPatch())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, user)
}

// Destroy handles DELETE /users/:id/.
func (v *UserViewSet) Destroy(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := v.svc.DeleteUser(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}

// SetPassword handles POST /users/:id/set_password/.
func (v *UserViewSet) SetPassword(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req SetPasswordRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := v.svc.SetPassword(c.Request.Context(), id, req.Password); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}

// ExtraActions implements router.ExtraActioner.
func (v *UserViewSet) ExtraActions() []router.Action {
	return []router.Action{
		{
			Name:    "set_password",
			Detail:  true,
			Methods: []string{http.MethodPost},
			Handler: v.SetPassword,
		},
	}
}

// bindID parses the :id route parameter, writing a 400 response when it is invalid.
func bindID(c *gin.Context) (uint, bool) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return 0, false
	}
	return id, true
}

func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	if id > uint64(^uint(0)) {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	return uint(id), nil
}
