// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2026 DeviceOS Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package testutil

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/check.v1"
)

type filePresenceChecker struct {
	*check.CheckerInfo
	present bool
}

// FilePresent verifies that the given file exists.
var FilePresent check.Checker = &filePresenceChecker{
	CheckerInfo: &check.CheckerInfo{Name: "FilePresent", Params: []string{"filename"}},
	present:     true,
}

// FileAbsent verifies that the given file does not exist.
var FileAbsent check.Checker = &filePresenceChecker{
	CheckerInfo: &check.CheckerInfo{Name: "FileAbsent", Params: []string{"filename"}},
	present:     false,
}

func (c *filePresenceChecker) Check(params []interface{}, names []string) (result bool, error string) {
	filename, ok := params[0].(string)
	if !ok {
		return false, "filename must be a string"
	}
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		if c.present {
			return false, fmt.Sprintf("file %q is absent but should exist", filename)
		}
		return true, ""
	}
	if err != nil {
		return false, fmt.Sprintf("cannot stat %q: %v", filename, err)
	}
	if !c.present {
		return false, fmt.Sprintf("file %q is present but should not exist", filename)
	}
	return true, ""
}

type fileEqualsChecker struct {
	*check.CheckerInfo
}

// FileEquals verifies that the given file's content equals the given
// string (or []byte).
var FileEquals check.Checker = &fileEqualsChecker{
	CheckerInfo: &check.CheckerInfo{Name: "FileEquals", Params: []string{"filename", "contents"}},
}

func (c *fileEqualsChecker) Check(params []interface{}, names []string) (result bool, error string) {
	filename, ok := params[0].(string)
	if !ok {
		return false, "filename must be a string"
	}
	buf, err := os.ReadFile(filename)
	if err != nil {
		return false, fmt.Sprintf("cannot read %q: %v", filename, err)
	}
	switch contents := params[1].(type) {
	case string:
		if string(buf) != contents {
			return false, fmt.Sprintf("file %q contents %q do not match %q", filename, buf, contents)
		}
	case []byte:
		if string(buf) != string(contents) {
			return false, fmt.Sprintf("file %q contents %q do not match %q", filename, buf, contents)
		}
	default:
		return false, "contents must be a string or []byte"
	}
	return true, ""
}

type containsChecker struct {
	*check.CheckerInfo
}

// Contains is a Checker that looks for a substring needle in a string
// haystack.
var Contains check.Checker = &containsChecker{
	&check.CheckerInfo{Name: "Contains", Params: []string{"haystack", "needle"}},
}

func (c *containsChecker) Check(params []interface{}, names []string) (result bool, error string) {
	haystack, ok := params[0].(string)
	if !ok {
		if stringer, sok := params[0].(fmt.Stringer); sok {
			haystack = stringer.String()
		} else {
			return false, "haystack must be a string"
		}
	}
	needle, ok := params[1].(string)
	if !ok {
		return false, "needle must be a string"
	}
	return strings.Contains(haystack, needle), ""
}
