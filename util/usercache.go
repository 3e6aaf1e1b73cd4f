package util

import (
	"container/list"
	"os"
	"strconv"
	"sync"

	"gorm.io/gorm"
)

// LRU cache for userID -> display name
type userEntry struct {
	userID uint
	name   string
}

type userLRU struct {
	mu       sync.Mutex
	ll       *list.List
	cache    map[uint]*list.Element
	capacity int
}

var userCache *userLRU

// InitUserNameCache initializes the LRU cache with given capacity.
// If capacity <= 0, a default of 1000 is used.
func InitUserNameCache(capacity int) {
	if capacity <= 0 {
		capacity = 1000
	}
	userCache = &userLRU{
		ll:       list.New(),
		cache:    make(map[uint]*list.Element),
		capacity: capacity,
	}
}

// UserNameCacheGet returns the display name and true if present in cache.
func UserNameCacheGet(userID uint) (string, bool) {
	if userCache == nil {
		return "", false
	}
	userCache.mu.Lock()
	defer userCache.mu.Unlock()
	if ele, ok := userCache.cache[userID]; ok {
		userCache.ll.MoveToFront(ele)
		if e, ok := ele.Value.(userEntry); ok {
			return e.name, true
		}
	}
	return "", false
}

// UserNameCacheSet sets the display name for a userID in the cache.
func UserNameCacheSet(userID uint, name string) {
	if userCache == nil {
		return
	}
	userCache.mu.Lock()
	defer userCache.mu.Unlock()
	if ele, ok := userCache.cache[userID]; ok {
		userCache.ll.MoveToFront(ele)
		ele.Value = userEntry{userID: userID, name: name}
		return
	}
	ele := userCache.ll.PushFront(userEntry{userID: userID, name: name})
	userCache.cache[userID] = ele
	if userCache.ll.Len() > userCache.capacity {
		// evict least recently used
		tail := userCache.ll.Back()
		if tail != nil {
			if e, ok := tail.Value.(userEntry); ok {
				delete(userCache.cache, e.userID)
			}
			userCache.ll.Remove(tail)
		}
	}
}

// GetUserName returns the display name for userID using cache, falling back to DB.
// If found in DB, caches the result.
func GetUserName(db *gorm.DB, userID uint) string {
	if userID == 0 {
		return ""
	}
	if name, ok := UserNameCacheGet(userID); ok {
		return name
	}
	if db == nil {
		return ""
	}
	var u struct{ Name string }
	if err := db.Table("users").Select("name").Where("id = ?", userID).Take(&u).Error; err == nil {
		if u.Name != "" {
			UserNameCacheSet(userID, u.Name)
		}
		return u.Name
	}
	return ""
}

// InitUserNameCacheFromEnv initializes the cache using the env var USER_NAME_CACHE_SIZE
func InitUserNameCacheFromEnv() {
	sizeStr := os.Getenv("USER_NAME_CACHE_SIZE")
	if sizeStr == "" {
		InitUserNameCache(0)
		return
	}
	if n, err := strconv.Atoi(sizeStr); err == nil {
		InitUserNameCache(n)
		return
	}
	InitUserNameCache(0)
}
