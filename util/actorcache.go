package util

import (
	"container/list"
	"os"
	"strconv"
	"sync"

	"gorm.io/gorm"
)

// Small in-process LRU caches for actor attributes the request path touches on
// every call: the role consulted by the authorization middleware and the email
// stamped onto audit rows. Both memoize lookups against the users table.

type actorAttr struct {
	userID uint
	value  string
}

type actorLRU struct {
	mu       sync.Mutex
	ll       *list.List
	index    map[uint]*list.Element
	capacity int
}

func newActorLRU(capacity int) *actorLRU {
	if capacity <= 0 {
		capacity = 1000
	}
	return &actorLRU{
		ll:       list.New(),
		index:    make(map[uint]*list.Element),
		capacity: capacity,
	}
}

func (c *actorLRU) get(userID uint) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, ok := c.index[userID]
	if !ok {
		return "", false
	}
	c.ll.MoveToFront(ele)
	return ele.Value.(actorAttr).value, true
}

func (c *actorLRU) set(userID uint, value string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.index[userID]; ok {
		c.ll.MoveToFront(ele)
		ele.Value = actorAttr{userID: userID, value: value}
		return
	}
	c.index[userID] = c.ll.PushFront(actorAttr{userID: userID, value: value})
	if c.ll.Len() > c.capacity {
		if tail := c.ll.Back(); tail != nil {
			delete(c.index, tail.Value.(actorAttr).userID)
			c.ll.Remove(tail)
		}
	}
}

func (c *actorLRU) drop(userID uint) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.index[userID]; ok {
		c.ll.Remove(ele)
		delete(c.index, userID)
	}
}

var (
	userCache *actorLRU // userID -> email
	roleCache *actorLRU // userID -> role
)

// InitUserEmailCache initializes the email cache with the given capacity.
// Capacity <= 0 falls back to the default of 1000.
func InitUserEmailCache(capacity int) {
	userCache = newActorLRU(capacity)
}

// InitUserRoleCache initializes the role cache with the given capacity.
// Capacity <= 0 falls back to the default of 1000.
func InitUserRoleCache(capacity int) {
	roleCache = newActorLRU(capacity)
}

// UserEmailCacheGet returns the cached email and true when present.
func UserEmailCacheGet(userID uint) (string, bool) {
	return userCache.get(userID)
}

// UserEmailCacheSet stores the email for a userID.
func UserEmailCacheSet(userID uint, email string) {
	userCache.set(userID, email)
}

// UserRoleCacheGet returns the cached role and true when present.
func UserRoleCacheGet(userID uint) (string, bool) {
	return roleCache.get(userID)
}

// UserRoleCacheSet stores the role for a userID.
func UserRoleCacheSet(userID uint, role string) {
	roleCache.set(userID, role)
}

// UserRoleCacheDrop removes a userID from the role cache, e.g. after a role
// change, so the next lookup goes back to the users table.
func UserRoleCacheDrop(userID uint) {
	roleCache.drop(userID)
}

// lookupUserColumn reads a single column off the users row and caches a
// non-empty result in the given cache.
func lookupUserColumn(db *gorm.DB, cache *actorLRU, userID uint, column string) string {
	if userID == 0 {
		return ""
	}
	if value, ok := cache.get(userID); ok {
		return value
	}
	if db == nil {
		return ""
	}
	var row struct{ Value string }
	if err := db.Table("users").Select(column+" AS value").Where("id = ?", userID).
		Take(&row).Error; err != nil {
		return ""
	}
	if row.Value != "" {
		cache.set(userID, row.Value)
	}
	return row.Value
}

// GetUserEmail returns the email for userID, consulting the cache first and
// falling back to the users table.
func GetUserEmail(db *gorm.DB, userID uint) string {
	return lookupUserColumn(db, userCache, userID, "email")
}

// GetUserRole returns the role for userID, consulting the cache first and
// falling back to the users table.
func GetUserRole(db *gorm.DB, userID uint) string {
	return lookupUserColumn(db, roleCache, userID, "role")
}

// InitUserEmailCacheFromEnv sizes the email cache from USER_EMAIL_CACHE_SIZE.
func InitUserEmailCacheFromEnv() {
	InitUserEmailCache(cacheSizeFromEnv("USER_EMAIL_CACHE_SIZE"))
}

// InitUserRoleCacheFromEnv sizes the role cache from USER_ROLE_CACHE_SIZE.
func InitUserRoleCacheFromEnv() {
	InitUserRoleCache(cacheSizeFromEnv("USER_ROLE_CACHE_SIZE"))
}

func cacheSizeFromEnv(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}
