package handlers

const (
	// maxBodyBytes caps JSON request bodies
	maxBodyBytes = 1 << 20

	msgInvalidJSON    = "invalid JSON body"
	msgMissingToken   = "access token required"
	msgInvalidLesson  = "lesson id must be an integer"
	msgUserRegistered = "user registered successfully"
	msgLoggedIn       = "login successful"
	msgProfileUpdated = "profile updated successfully"
	msgPasswordUpdate = "password changed successfully"
	msgAccountDeleted = "account deleted"
	msgLessonComplete = "lesson completed"
)
