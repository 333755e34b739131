// Package rtdb stores users and SOS records in the Firebase Realtime Database.
//
// Layout:
//
//	users/{uid}/profile
//	users/{uid}/emergency_contacts
//	users/{uid}/sos_history/{sos_id}
//	active_sos/{sos_id}
//
// History ordering requires an ".indexOn": ["timestamp_ms"] rule on users/$uid/sos_history
// (see database.rules.json).
package rtdb

import "fmt"

const (
	usersRoot     = "users"
	activeSOSRoot = "active_sos"
)

func userPath(uid string) string {
	return fmt.Sprintf("%s/%s", usersRoot, uid)
}

func profilePath(uid string) string {
	return userPath(uid) + "/profile"
}

func contactsPath(uid string) string {
	return userPath(uid) + "/emergency_contacts"
}

func historyPath(uid string) string {
	return userPath(uid) + "/sos_history"
}

func historyEntryPath(uid, id string) string {
	return fmt.Sprintf("%s/%s", historyPath(uid), id)
}

func sosPath(id string) string {
	return fmt.Sprintf("%s/%s", activeSOSRoot, id)
}
