// Package store 提供 core.Store 的基础设施实现。
//
// 接口定义在 core 包，此包只包含实现：
//
//	var s core.Store = store.NewMemoryStore()
//	var s core.Store, err = store.NewRedisStore(store.RedisConfig{Addr: "localhost:6379"})
package store
