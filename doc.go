// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package anoncreds is an implementation of anonymous credentials ("claims") built on
// Camenisch-Lysyanskaya signatures: issuers sign attribute values blindly bound to a holder's
// master secret, holders prove possession of claims while selectively disclosing attributes and
// proving predicates over hidden ones, and issuers revoke claims through accumulator based
// revocation registries. See anoncreds_test.go for the complete flow.
package anoncreds
