// Package p4 is the boundary between p4gate and the Perforce server.
//
// Every server interaction goes through the Gateway interface. P4Gateway
// implements it on top of the p4 command line client, invoked through a
// Runner with structured argument lists; FakeGateway and FakeRunner are the
// deterministic doubles used by tests.
//
// Key pieces:
//   - Gateway: describe, where, change, reopen, revert, delete, submit, edit
//   - ParseTagged: tolerant parser for -ztag output
//   - QueryError / ChangelistCreationError: typed failures callers act on
package p4
