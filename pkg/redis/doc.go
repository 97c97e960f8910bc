// Package redis provides a retrying go-redis client constructor and a
// health check helper. The tenant directory's optional shared cache
// (svc/directory.RedisCache) is built on the client returned here.
package redis
