// Package pubsub implements the fire-and-forget broadcast channel behind the
// review dashboard. A mutation publishes one payload-less event; connected
// clients re-fetch the submission list. Clients that connect later simply miss
// earlier events.
package pubsub
