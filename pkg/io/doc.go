// Package io provides JSON and YAML import and export of member lists.
//
// # File Format
//
// A file is either a bare list of members or a document that also carries
// the view configuration:
//
//	{
//	  "members": [
//	    {"id": 1, "name": "Karl", "gender": "male", "generation": 1, "spouse_id": 2},
//	    {"id": 2, "name": "Anna", "gender": "female", "generation": 1, "spouse_id": 1},
//	    {"id": 3, "name": "Clara", "generation": 2, "father_id": 1, "mother_id": 2}
//	  ],
//	  "config": {"title": "The Karlssons"}
//	}
//
// The same shapes are accepted as YAML. Ids may be strings or numbers.
//
// # Import
//
// Use [ImportFile] to read a document from a path (format chosen by file
// extension), or [ReadDocument] / [ReadMembers] to read from any io.Reader.
// Members are normalised (trimmed ids, canonical gender) but references are
// not resolved here; dangling ids are recovered later by the layout.
//
// # Export
//
// Use [ExportFile] or [WriteDocument] / [WriteMembers]. Members are written
// sorted by id so exports diff cleanly.
package io
