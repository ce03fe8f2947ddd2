// Package broadcast is a small typed fan-out used to push session events from
// the session manager to every open tab stream.
//
// A Broadcaster delivers each message to all current subscribers without
// blocking the publisher: a subscriber whose buffer is full is dropped and its
// channel closed, which consumers observe as the end of the stream and treat
// like a disconnect. Subscriptions end when their context is cancelled or when
// Close is called on the subscriber.
//
//	events := broadcast.NewMemoryBroadcaster[session.Event](64)
//	sub := events.Subscribe(ctx)
//	for msg := range sub.Receive(ctx) {
//	    handle(msg.Data)
//	}
//
// Topics keeps one broadcaster per topic, so a subscriber only buffers the
// messages of its own topic. The session manager uses one topic per session.
//
//	sub := topics.Subscribe(ctx, sessionID.String())
package broadcast
