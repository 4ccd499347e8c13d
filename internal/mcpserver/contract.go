package mcpserver

// TagFormatContract describes how notes are split into tagged sections.
// LLM consumers should follow it when writing notes the tag index must see.
const TagFormatContract = `# tagvault Tagged Section Format

Notes are plain UTF-8 Markdown files ending in ` + "`" + `.md` + "`" + `. Files and
directories whose name starts with a dot are ignored.

## Lines

- **Tag line**: a line that, with surrounding whitespace removed, is exactly
  ` + "`" + `#` + "`" + ` followed by one or more letters, digits or hyphens
  (` + "`" + `#work` + "`" + `, ` + "`" + `#project-x` + "`" + `, ` + "`" + `#Q3` + "`" + `). Tags are case-sensitive.
  ` + "`" + `#two words` + "`" + `, ` + "`" + `# heading` + "`" + ` and ` + "`" + `#tag!` + "`" + ` are ordinary text.
- **Separator**: a line that, trimmed, is three or more hyphens (` + "`" + `---` + "`" + `).
- Everything else is ordinary text.

## Sections

1. A tag line starts a section. Its body is every following line up to the
   next tag line, separator, or end of file.
2. A separator ends the current section. Lines after it belong to no tag
   until the next tag line.
3. Text before the first tag line, or after a separator, is untagged.
4. A section whose body is empty or only whitespace is not recorded.
5. Section bodies are reported trimmed; inner lines are kept as written.
6. Notes named ` + "`" + `YYYY-MM-DD.md` + "`" + ` are daily notes; their sections carry that date.

## Deleting a tag

Deleting ` + "`" + `#work` + "`" + ` removes every ` + "`" + `#work` + "`" + ` tag line and its body from every
note. All other lines stay byte-for-byte the same, except a separator that
would be left at the top of a note (or directly under another separator),
which is removed too.

## Example

` + "```" + `markdown
standup notes, untagged
#work
finish report
review PR 42
---
#home
buy milk
` + "```" + `

This note has two sections: ` + "`" + `#work` + "`" + ` ("finish report\nreview PR 42") and
` + "`" + `#home` + "`" + ` ("buy milk").
`
