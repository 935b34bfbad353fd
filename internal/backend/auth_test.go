/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	a := NewAuth("s3cret", time.Hour, 24*time.Hour)
	tok, exp, err := a.Issue("", 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d := time.Until(exp); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("default ttl not applied: %v", d)
	}
	sub, err := a.Verify(tok)
	if err != nil || sub != DefaultSubject {
		t.Fatalf("Verify = %q, %v", sub, err)
	}
}

func TestIssueClampsTTL(t *testing.T) {
	a := NewAuth("s3cret", time.Hour, 2*time.Hour)
	_, exp, err := a.Issue("alice", 48*time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) > time.Hour {
		t.Fatalf("ttl above max was not reset to default")
	}
}

func TestVerifyRejectsExpiredAndUnsigned(t *testing.T) {
	a := NewAuth("s3cret", time.Hour, time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	s, err := expired.SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := a.Verify(s); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expired token: err = %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	u, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := a.Verify(u); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unsigned token: err = %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("migrations/001_init.sql")
	if err != nil || v != 1 {
		t.Fatalf("parseVersion = %d, %v", v, err)
	}
	if _, err := parseVersion("init.sql"); err == nil {
		t.Fatalf("expected error for unversioned file")
	}
}
