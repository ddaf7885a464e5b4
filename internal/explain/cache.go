package explain

import (
    "container/list"
    "sync"
)

type cacheEntry struct {
    key string
    val [][]int
}

// lruCache memoizes enumerated explanation families by canonical rule-index
// key. Values are shared between callers and must be treated as read-only.
type lruCache struct {
    mu    sync.Mutex
    cap   int
    ll    *list.List
    items map[string]*list.Element
}

func newLRUCache(capacity int) *lruCache {
    if capacity <= 0 { capacity = 128 }
    return &lruCache{cap: capacity, ll: list.New(), items: map[string]*list.Element{}}
}

func (c *lruCache) get(key string) ([][]int, bool) {
    c.mu.Lock()
    defer c.mu.Unlock()
    el, ok := c.items[key]
    if !ok { return nil, false }
    c.ll.MoveToFront(el)
    return el.Value.(*cacheEntry).val, true
}

func (c *lruCache) add(key string, val [][]int) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if el, ok := c.items[key]; ok {
        c.ll.MoveToFront(el)
        el.Value.(*cacheEntry).val = val
        return
    }
    c.items[key] = c.ll.PushFront(&cacheEntry{key: key, val: val})
    if c.ll.Len() > c.cap {
        last := c.ll.Back()
        if last != nil {
            c.ll.Remove(last)
            delete(c.items, last.Value.(*cacheEntry).key)
        }
    }
}

func (c *lruCache) len() int {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.ll.Len()
}
