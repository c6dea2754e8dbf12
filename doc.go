/*
Package goelko is the message protocol core of a multi-process server framework.

Every server process talks to the others through small JSON shaped messages, and every
persistent object is stored as a JSON shaped descriptor. goelko parses and writes these
values with a stable wire syntax, and binds an incoming message or descriptor, by verb
or by type tag, to a registered handler or constructor.

# Messages

A message is one object carrying the target ref and the verb:

	{"to":"room1", "op":"say", "text":"hi"}

Handlers are registered per capability on a Dispatcher. The parameters of a handler are
bound from the message fields by name and coerced to the declared types:

	roomCap := binding.TypeCapability("Room", (*Room)(nil))
	d := goelko.NewDispatcher()
	d.Register(roomCap, dispatch.NewMethod("say", (*Room).Say,
		binding.Required("text", binding.String)))
	d.Deliver(sender, room, msg)

# Descriptors

A descriptor is an object with an optional type tag, decoded through the constructor of
the capability the tag resolves to:

	{"type":"cart", "width":3, "height":4}

# Object database

goelko.OpenObjDB opens the object store configured in the [objdb] section of goelko.ini.
Stored descriptors may reference each other with "ref$name" properties. Callbacks of
asynchronous requests run in goelko.Tick, which the main routine is expected to call.

# Configuration

Setup reads goelko.ini. The [json] strict key selects whether object keys are written as
quoted strings or as bare symbols, and is bound into the process Encoder once.
*/
package goelko
