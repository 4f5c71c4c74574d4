package model

import "encoding/json"

// FeatureFlag はボット横断のフィーチャーフラグを表す。
// ValueはJSONオブジェクトで、解釈は各ボット側に委ねる。
type FeatureFlag struct {
	Key         string
	Value       json.RawMessage
	Description string
}
