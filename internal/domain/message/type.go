package message

// Входящие события
const (
	MsgTypeJoinAsTile         = "join-as-tile"
	MsgTypeJoinAsDirector     = "join-as-director"
	MsgTypeSetRegion          = "set-region"
	MsgTypeSetMedia           = "set-media"
	MsgTypeSetPlayback        = "set-playback"
	MsgTypeSetIdentifyMode    = "set-identify-mode"
	MsgTypeSetCanvasSize      = "set-canvas-size"
	MsgTypeReportSelfRotation = "report-self-rotation"
)

// Исходящие события
const (
	MsgTypeRoomSnapshot        = "room-snapshot"
	MsgTypeRegionChanged       = "region-changed"
	MsgTypeTilesChanged        = "tiles-changed"
	MsgTypeTileJoined          = "tile-joined"
	MsgTypeMediaChanged        = "media-changed"
	MsgTypePlaybackChanged     = "playback-changed"
	MsgTypeIdentifyModeChanged = "identify-mode-changed"
	MsgTypeCanvasSizeChanged   = "canvas-size-changed"
	MsgTypeTileRotationChanged = "tile-rotation-changed"
	MsgTypeTileRemoved         = "tile-removed"
	MsgTypeError               = "error"
)

// Error codes carried by MsgTypeError
const (
	ErrCodeMalformedPayload = "malformed_payload"
	ErrCodeNotJoined        = "not_joined"
	ErrCodeAlreadyJoined    = "already_joined"
	ErrCodeForbidden        = "forbidden"
	ErrCodeUnknownType      = "unknown_type"
)
