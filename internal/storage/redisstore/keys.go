package redisstore

import "fmt"

const (
	userKeyPrefix = "raksha:user:" // raksha:user:{uid}:<suffix>
	sosKeyPrefix  = "raksha:sos:"  // raksha:sos:{sos_id} -> canonical record
)

func profileKey(uid string) string {
	return fmt.Sprintf("%s%s:profile", userKeyPrefix, uid)
}

func contactsKey(uid string) string {
	return fmt.Sprintf("%s%s:contacts", userKeyPrefix, uid)
}

// historyKey is a hash of sos_id -> history entry JSON.
func historyKey(uid string) string {
	return fmt.Sprintf("%s%s:sos_history", userKeyPrefix, uid)
}

// historyIndexKey is a sorted set of sos_id scored by trigger time in milliseconds.
func historyIndexKey(uid string) string {
	return fmt.Sprintf("%s%s:sos_index", userKeyPrefix, uid)
}

func sosKey(id string) string {
	return fmt.Sprintf("%s%s", sosKeyPrefix, id)
}
