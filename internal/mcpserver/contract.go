package mcpserver

// NoteFormatContract describes the canonical Markdown note format that LLM
// consumers should follow when creating or updating notes.
const NoteFormatContract = `# Laguz Note Format Contract

Every Markdown note stored in Laguz SHOULD follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL but recommended
tags:                               # OPTIONAL - YAML list
  - tag-one
  - tag-two
created: 2025-01-15                 # OPTIONAL - ISO-8601 date or datetime
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Frontmatter is optional.** When present, the ` + "`---`" + ` fences must be the
   first thing in the file (no leading blank lines) and the block must be
   valid YAML; an unclosed or malformed block is rejected.
2. **Key order is preserved.** Laguz re-emits frontmatter in the order keys
   were written, so unrelated edits produce minimal diffs.
3. **File paths** end with ` + "`.md`" + ` and use forward slashes. Paths are always
   relative to the vault root; ` + "`..`" + ` segments and absolute paths are rejected.
4. **Tags** are lowercase, kebab-case (e.g. ` + "`project-x`" + `, ` + "`meeting-notes`" + `).
5. **Encoding** is UTF-8 with a trailing newline.

## Editing

- ` + "`edit_note`" + ` with ` + "`update_metadata=false`" + ` replaces only the body; the
  stored frontmatter is untouched.
- ` + "`edit_note`" + ` with ` + "`update_metadata=true`" + ` parses the new content for an
  embedded frontmatter block and merges its keys over the existing ones;
  keys you do not mention are kept.
- ` + "`move_note`" + ` never rewrites content; it is a pure rename.

## Example

` + "```" + `markdown
---
title: Weekly standup 2025-01-20
tags:
  - meeting-notes
created: 2025-01-20
---

# Weekly standup 2025-01-20

Attendees: Alice, Bob.

## Action items

- Alice to review the design doc
- Bob to update the roadmap
` + "```" + `
`
