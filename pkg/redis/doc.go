// Package redis connects the go-redis client used by the shared session
// store.
//
//	client, err := redis.Connect(ctx, cfg)
//	store := session.NewRedisStore(client)
//
// Connect retries until the server answers PING or ConnectTimeout elapses.
package redis
