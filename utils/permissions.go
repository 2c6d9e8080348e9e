package utils

import "github.com/probfile/tracker/models"

// Permission checks mirror the role matrix: Admins manage everything,
// Partners manage all files but not data management, Users only their own
// files and assignments.

// CanAccessDataManagement reports whether role may export/import all data.
func CanAccessDataManagement(role string) bool {
	return role == models.RoleAdmin
}

// CanDeleteItems reports whether role may delete tasks, subtasks and other
// people's comments.
func CanDeleteItems(role string) bool {
	return role == models.RoleAdmin || role == models.RolePartner
}

// CanEditAllFiles reports whether role may edit any problem file.
func CanEditAllFiles(role string) bool {
	return role == models.RoleAdmin || role == models.RolePartner
}

// CanEditFile reports whether username/role may edit a specific file.
func CanEditFile(role, username, fileOwner string) bool {
	return CanEditAllFiles(role) || username == fileOwner
}

// CanManageContacts reports whether username/role may manage a file's contacts.
func CanManageContacts(role, username, fileOwner string) bool {
	return CanEditAllFiles(role) || username == fileOwner
}

// CanDeleteComment reports whether username/role may delete a given comment.
// Authors always can; Admins and Partners can delete anyone's.
func CanDeleteComment(role, username, commentAuthor string) bool {
	return username == commentAuthor || CanDeleteItems(role)
}
