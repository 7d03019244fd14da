// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package localmodel talks to a local inference runtime over HTTP for
// the model-backed reply mode. The runtime is optional: whenever it is
// not ready the package degrades to the built-in template composition,
// so sending never waits on a model download.
package localmodel
