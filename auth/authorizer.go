package auth

import "fmt"

// Permissions guarding the drinks endpoints
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

// CheckPermission confirms that claims grant the required permission.
// A token without any permissions claim is ErrNoPermissionsInToken, which keeps
// "improperly provisioned" apart from "insufficient rights" (ErrPermissionNotFound).
func CheckPermission(claims *Claims, required string) error {
	if claims == nil || !claims.PermissionsClaimed {
		return ErrNoPermissionsInToken
	}

	if !claims.HasPermission(required) {
		return ErrPermissionNotFound.wrap(fmt.Errorf("required %q", required))
	}

	return nil
}
