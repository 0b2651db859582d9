package srv

import (
	"github.com/mikespook/gorbac/v2"

	"github.com/filecab/filecab/pkg/types"
)

const (
	RoleAdmin  = "role-admin"
	RoleEditor = "role-editor"
	RoleViewer = "role-viewer"
	RoleMember = "role-member"

	PermissionAdmin  = "admin"
	PermissionEdit   = "edit"
	PermissionView   = "view"
	PermissionMember = "member"
)

func SetupRBACSrv() *RBACSrv {
	rbac := gorbac.New()

	pAdmin := gorbac.NewStdPermission(PermissionAdmin)
	pEdit := gorbac.NewStdPermission(PermissionEdit)
	pView := gorbac.NewStdPermission(PermissionView)
	pMember := gorbac.NewStdPermission(PermissionMember)

	roleAdmin := gorbac.NewStdRole(RoleAdmin)
	roleAdmin.Assign(pAdmin)

	roleEditor := gorbac.NewStdRole(RoleEditor)
	roleEditor.Assign(pEdit)

	roleViewer := gorbac.NewStdRole(RoleViewer)
	roleViewer.Assign(pView)

	roleMember := gorbac.NewStdRole(RoleMember)
	roleMember.Assign(pMember)

	rbac.Add(roleAdmin)
	rbac.Add(roleEditor)
	rbac.Add(roleViewer)
	rbac.Add(roleMember)

	rbac.SetParent(RoleViewer, RoleMember)
	rbac.SetParent(RoleEditor, RoleViewer)
	rbac.SetParent(RoleAdmin, RoleEditor)

	return &RBACSrv{
		rbac: rbac,
	}
}

type RBACSrv struct {
	rbac *gorbac.RBAC
}

// CheckPermission 检查角色是否有某权限
func (a *RBACSrv) CheckPermission(roleID, permissionID string) bool {
	return a.rbac.IsGranted(roleID, gorbac.NewStdPermission(permissionID), nil)
}

// CanRestore 回收站恢复权限：删除者本人，或管理员覆盖
func (a *RBACSrv) CanRestore(userID, roleID string, entry *types.RecycleBinEntry) bool {
	if entry == nil {
		return false
	}
	if entry.DeletedBy == userID {
		return true
	}
	return a.CheckPermission(roleID, PermissionAdmin)
}

// CanForceDelete 彻底删除不可逆，仅最高权限层可执行
func (a *RBACSrv) CanForceDelete(roleID string) bool {
	return a.CheckPermission(roleID, PermissionAdmin)
}

// CanViewAll 是否可越过 owner-or-public 的可见性过滤
func (a *RBACSrv) CanViewAll(roleID string) bool {
	return a.CheckPermission(roleID, PermissionAdmin)
}
