// Package names implements the on-disk naming contract for synthesized
// locals: long-lived locals that the debugger or the EnC engine must be
// able to re-identify across generations are given a name of the form
// "<prefix><kind><ordinal>$<uniqueId>", where uniqueId is always rendered
// as four zero-padded digits. Temporaries are never named.
//
// The kind tags and their wire values are fixed: changing them breaks
// compatibility with any debugger session relying on a previous build.
package names

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SynthesizedLocalKind enumerates the semantic role of a compiler-generated
// local. Zero value (LocalTemporary) is the default for unnamed slots.
type SynthesizedLocalKind int

const (
	LocalTemporary SynthesizedLocalKind = 0

	LocalLock                           SynthesizedLocalKind = 1
	LocalUsing                          SynthesizedLocalKind = 2
	LocalConditionalBranchDiscriminator SynthesizedLocalKind = 3
	LocalForEachEnumerator              SynthesizedLocalKind = 4
	LocalForEachArray                   SynthesizedLocalKind = 5
	LocalForEachArrayIndex0             SynthesizedLocalKind = 6
	LocalForEachArrayLimit0             SynthesizedLocalKind = 7
	LocalFixedString                    SynthesizedLocalKind = 8

	LocalLockTaken                                 SynthesizedLocalKind = 9
	LocalAwait                                     SynthesizedLocalKind = 10
	LocalAwaitByRefReusable                        SynthesizedLocalKind = 11
	LocalTryAwaitPendingCatch                      SynthesizedLocalKind = 12
	LocalTryAwaitPendingStateMachineState          SynthesizedLocalKind = 13
	LocalExceptionFilterAwaitHoistedExceptionLocal SynthesizedLocalKind = 14
)

// kindTag is the fixed alphabetic wire tag for a long-lived kind; digits
// never appear in a tag so the name can be parsed unambiguously.
var kindTag = map[SynthesizedLocalKind]string{
	LocalLock:                             "Lock",
	LocalUsing:                            "Using",
	LocalConditionalBranchDiscriminator:   "CondBr",
	LocalForEachEnumerator:                "FEEnum",
	LocalForEachArray:                     "FEArr",
	LocalForEachArrayIndex0:               "FEArrIdx",
	LocalForEachArrayLimit0:               "FEArrLim",
	LocalFixedString:                      "FixedStr",
	LocalLockTaken:                        "LockTaken",
	LocalAwait:                            "Await",
	LocalAwaitByRefReusable:               "AwaitRef",
	LocalTryAwaitPendingCatch:             "TryAwaitCatch",
	LocalTryAwaitPendingStateMachineState: "TryAwaitState",
	LocalExceptionFilterAwaitHoistedExceptionLocal: "ExFilterAwaitExc",
}

var tagKind map[string]SynthesizedLocalKind

// tagsLongestFirst lists known tags ordered longest-first so parsing picks
// the longest matching tag (e.g. "FEArrIdx" before "FEArr").
var tagsLongestFirst []string

func init() {
	tagKind = make(map[string]SynthesizedLocalKind, len(kindTag))
	tagsLongestFirst = make([]string, 0, len(kindTag))
	for k, tag := range kindTag {
		tagKind[tag] = k
		tagsLongestFirst = append(tagsLongestFirst, tag)
	}
	sort.Slice(tagsLongestFirst, func(i, j int) bool {
		return len(tagsLongestFirst[i]) > len(tagsLongestFirst[j])
	})
}

// Prefix is the fixed lead-in for every synthesized long-lived local name.
const Prefix = "CS$"

// IsLongLived reports whether kind must be named so the debugger/EnC engine
// can re-identify the local across generations.
func IsLongLived(kind SynthesizedLocalKind) bool {
	_, ok := kindTag[kind]
	return ok
}

// alwaysNamed holds the kinds the debugger depends on regardless of debug
// level: the async/state-machine locals that EnC and stepping both need to
// re-identify even when the compiler otherwise omits PDB-only names.
var alwaysNamed = map[SynthesizedLocalKind]bool{
	LocalAwait:                            true,
	LocalAwaitByRefReusable:               true,
	LocalTryAwaitPendingCatch:             true,
	LocalTryAwaitPendingStateMachineState: true,
	LocalExceptionFilterAwaitHoistedExceptionLocal: true,
}

// ShouldName reports whether kind should receive a Format-ed name under the
// given debug level. full names every long-lived kind; otherwise only the
// debugger-depended kinds in alwaysNamed are named (§6).
func ShouldName(kind SynthesizedLocalKind, full bool) bool {
	if !IsLongLived(kind) {
		return false
	}
	if full {
		return true
	}
	return alwaysNamed[kind]
}

// Format renders the on-disk name for a long-lived local. It panics if kind
// is not long-lived; callers must check IsLongLived first (mirrors the
// invariant that temporaries are never named).
func Format(kind SynthesizedLocalKind, ordinal int, uniqueID int) string {
	tag, ok := kindTag[kind]
	if !ok {
		panic(fmt.Sprintf("names: kind %d is not long-lived and cannot be named", kind))
	}
	if ordinal < 0 {
		panic("names: ordinal must be non-negative")
	}
	if uniqueID < 0 || uniqueID > 9999 {
		panic("names: uniqueID must fit in 4 digits")
	}
	return fmt.Sprintf("%s%s%d$%04d", Prefix, tag, ordinal, uniqueID)
}

// Parse recovers (kind, ordinal, uniqueID) from a name produced by Format.
// It returns ok=false for anything that isn't a well-formed long-lived
// local name, including names of non-long-lived kinds (which are never
// produced by Format in the first place).
func Parse(name string) (kind SynthesizedLocalKind, ordinal int, uniqueID int, ok bool) {
	rest, ok := cutPrefix(name, Prefix)
	if !ok {
		return 0, 0, 0, false
	}
	dollar := strings.LastIndexByte(rest, '$')
	if dollar < 0 || dollar != len(rest)-5 {
		return 0, 0, 0, false
	}
	idDigits := rest[dollar+1:]
	if len(idDigits) != 4 || !allDigits(idDigits) {
		return 0, 0, 0, false
	}
	uid, err := strconv.Atoi(idDigits)
	if err != nil {
		return 0, 0, 0, false
	}
	tagAndOrdinal := rest[:dollar]
	for _, tag := range tagsLongestFirst {
		if !strings.HasPrefix(tagAndOrdinal, tag) {
			continue
		}
		ordDigits := tagAndOrdinal[len(tag):]
		if ordDigits == "" || !allDigits(ordDigits) {
			continue
		}
		ord, err := strconv.Atoi(ordDigits)
		if err != nil {
			continue
		}
		return tagKind[tag], ord, uid, true
	}
	return 0, 0, 0, false
}

func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
