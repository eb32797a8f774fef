package store

// 注意：此包只包含实现，接口定义在 core 包（core.Store）。
// 两个内置后端：
//   - MemoryStore：进程内实现，测试/开发/单机原型
//   - RedisStore：生产环境常用，产物 blob 与结果缓存都可以落在这里
