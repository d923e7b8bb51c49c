package mcpserver

// MemoryFormat describes how workspace files become memories, for agents
// reading or searching them.
const MemoryFormat = `# Mission Control Memory Format

Memories are synced from the agent workspace: top-level *.md files and
*.md files directly inside memory/. Subdirectories are not scanned.

## Fields

- slug: path relative to the workspace without ".md" (e.g. memory/2026-02-21)
- title: first "# " heading with emphasis markers removed, else the file name
- category:
  - core: MEMORY.md, SOUL.md, IDENTITY.md
  - daily: files named YYYY-MM-DD.md
  - reference: everything else
- tags: up to five "## " headings, lowercased, letters/digits/spaces/hyphens only
- wordCount: whitespace-separated words of the original file

## Redaction

Content is redacted before it is stored or returned. Credential assignments,
vendor API keys, JWTs, and IPv4 addresses appear as [REDACTED].

## Sync

sync_memories upserts every file by slug. Deleting a file does not delete its
memory.
`
