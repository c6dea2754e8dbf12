package consts

import "time"

// Tunable Options
const (
	// For Literal Builder
	// LITERAL_INITIAL_BUFFER_SIZE is the initial capacity of a root literal buffer
	LITERAL_INITIAL_BUFFER_SIZE = 256

	// For Parser
	// MAX_PARSE_DEPTH is the maximum nesting of arrays and objects accepted by the parser
	MAX_PARSE_DEPTH = 512
	// SYNTAX_ERROR_CONTEXT_LEN is the number of input characters quoted around a syntax error
	SYNTAX_ERROR_CONTEXT_LEN = 24

	// For Dispatcher
	// DEFAULT_MAX_RETARGET_HOPS bounds the retargeting chain followed for one capability
	DEFAULT_MAX_RETARGET_HOPS = 16
	// DEFAULT_DISPATCH_WARN_THRESHOLD is the handler duration above which opmon warns
	DEFAULT_DISPATCH_WARN_THRESHOLD = time.Millisecond * 100

	// For Object Database
	// OBJDB_OP_WARN_THRESHOLD is the store operation duration above which opmon warns
	OBJDB_OP_WARN_THRESHOLD = time.Millisecond * 100
	// OBJDB_QUEUE_WARN_STEP warns every time the request queue grows by this many entries
	OBJDB_QUEUE_WARN_STEP = 100
	// OBJDB_RETRY_INTERVAL is the wait before reopening a broken store connection
	OBJDB_RETRY_INTERVAL = time.Second
	// OBJDB_PUT_RETRIES is the number of times a put is retried on a broken store connection
	OBJDB_PUT_RETRIES = 3

	// For Operation Monitor
	// OPMON_DUMP_INTERVAL is the interval to print opmon infos to output
	OPMON_DUMP_INTERVAL = 0
)

// Debug Options
const (
	// DEBUG_DISPATCH prints dispatch debug logs
	DEBUG_DISPATCH = false
	// DEBUG_DECODE prints decoder debug logs
	DEBUG_DECODE = false
	// DEBUG_SAVE_LOAD prints objdb get & put debug logs
	DEBUG_SAVE_LOAD = false
)

// Reserved message keys
const (
	// KEY_TO is the message target reference
	KEY_TO = "to"
	// KEY_OP is the message verb
	KEY_OP = "op"
	// KEY_TYPE is the decoding type tag
	KEY_TYPE = "type"
	// KEY_REF is the reference of a stored object
	KEY_REF = "ref"
	// KEY_ID is the document id used by some object stores
	KEY_ID = "_id"
	// REF_PREFIX marks a field whose value names stored objects to be loaded in place
	REF_PREFIX = "ref$"
	// CLASSDESC_TAG is the type tag of class descriptor objects
	CLASSDESC_TAG = "classes"
	// CLASS_TAG is the type tag of one class entry of a class descriptor
	CLASS_TAG = "class"
)
