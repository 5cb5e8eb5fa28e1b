// Package feed drives houses from outside the process.
//
// MQTTFeed subscribes to per-house update topics, runs one cycle per
// message and republishes each committed state as a retained message.
// Scenario files replay a scripted sequence of updates against a
// simulated clock and check the resulting views.
package feed
