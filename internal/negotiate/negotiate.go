// Package negotiate はリクエストのメタデータから応答の表現形式を選択する。
//
// 表現形式はDataとScriptの2つだけで、読み取り操作は常にDataを返す。
// Scriptはプログラムからの変更操作にのみ使われ、ユーザーのデータを含まない。
package negotiate

import (
	"errors"
	"net/http"
)

// Representation は応答の表現形式。
type Representation int

const (
	// Data はJSONオブジェクトによる表現。
	Data Representation = iota
	// Script は固定テンプレートのJavaScriptによる表現。
	Script
)

// String はログ出力用の名前を返す。
func (r Representation) String() string {
	switch r {
	case Data:
		return "data"
	case Script:
		return "script"
	default:
		return "unknown"
	}
}

// Operation は操作の種類。
type Operation int

const (
	// OperationRead は状態を変更しない読み取り操作。
	OperationRead Operation = iota
	// OperationMutation は状態を変更する操作。
	OperationMutation
)

// パス拡張子として受け付ける形式名。
const (
	FormatNone   = ""
	FormatData   = "data"
	FormatScript = "script"
)

// RequestedWithHeader はプログラムからのリクエストを示すヘッダー。
// クロスオリジンのマークアップからは付与できない。
const RequestedWithHeader = "X-Requested-With"

const requestedWithXHR = "XMLHttpRequest"

// ErrNotAcceptable は要求された表現形式を返せないことを表す。
var ErrNotAcceptable = errors.New("representation not acceptable")

// Signals は表現形式の選択に使うリクエストのメタデータ。
type Signals struct {
	Format        string // パス拡張子（"", "data", "script"）
	RequestedWith bool   // X-Requested-With: XMLHttpRequest の有無
	Accept        string // ログ用。選択には使わない
}

// SignalsFromRequest はリクエストとパス拡張子からSignalsを組み立てる。
func SignalsFromRequest(r *http.Request, format string) Signals {
	return Signals{
		Format:        format,
		RequestedWith: r.Header.Get(RequestedWithHeader) == requestedWithXHR,
		Accept:        r.Header.Get("Accept"),
	}
}

// Select は操作とSignalsから表現形式を決定する。
//
// 読み取り操作は常にData。.script の明示指定はErrNotAcceptableになる。
// 変更操作は X-Requested-With がある場合のみScript、それ以外はData。
// .data は常にDataを強制し、ヘッダーなしの .script はErrNotAcceptableになる。
// Acceptは参照しない。
func Select(op Operation, sig Signals) (Representation, error) {
	switch sig.Format {
	case FormatNone, FormatData, FormatScript:
	default:
		return Data, ErrNotAcceptable
	}

	switch op {
	case OperationMutation:
		switch {
		case sig.Format == FormatData:
			return Data, nil
		case sig.RequestedWith:
			return Script, nil
		case sig.Format == FormatScript:
			return Data, ErrNotAcceptable
		default:
			return Data, nil
		}
	default:
		if sig.Format == FormatScript {
			return Data, ErrNotAcceptable
		}
		return Data, nil
	}
}
