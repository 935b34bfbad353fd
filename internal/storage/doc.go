/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements board persistence.
// A board is a directory holding the serialized state (board.json), its metadata (board.meta.json) and
// timestamped backups. Writes are transactional (temp file + rename) and the previous file is backed up first.
// Boards are registered in a library index at <boards dir>/.czd/library.sqlite, which also keeps the autosave
// snapshot history. The library is derived data and can be rebuilt from the board directories.
package storage
