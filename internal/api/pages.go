package api

import "html/template"

// loginPage is served with 401 to every gated request without a session.
// It is self-contained: no external scripts, styles, or fonts.
const loginPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Mission Control · Sign in</title>
<style>
  body { margin: 0; min-height: 100vh; display: grid; place-items: center; background: #0b0d12; color: #e6e8ef; font: 14px system-ui, sans-serif; }
  main { width: 320px; padding: 32px; border: 1px solid #252a3a; border-radius: 12px; background: #11141c; }
  h1 { margin: 0 0 20px; font-size: 18px; }
  input, button { width: 100%; box-sizing: border-box; padding: 10px 12px; border-radius: 8px; font-size: 14px; }
  input { border: 1px solid #252a3a; background: #181c27; color: inherit; }
  button { margin-top: 12px; border: 0; background: #6d5dfc; color: #fff; cursor: pointer; }
  button:disabled { opacity: .6; }
  #msg { min-height: 1.2em; margin: 10px 0 0; color: #f87171; font-size: 12px; }
  #msg.wait { color: #fbbf24; }
</style>
</head>
<body>
<main>
  <h1>Mission Control</h1>
  <form id="login">
    <input type="password" id="password" placeholder="Password" autocomplete="current-password" autofocus required>
    <button type="submit" id="submit">Sign in</button>
    <p id="msg" role="alert"></p>
  </form>
</main>
<script>
document.getElementById("login").addEventListener("submit", async function (ev) {
  ev.preventDefault();
  var btn = document.getElementById("submit"), msg = document.getElementById("msg");
  btn.disabled = true;
  msg.textContent = "";
  msg.className = "";
  try {
    var res = await fetch("/api/auth", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ password: document.getElementById("password").value })
    });
    if (res.ok) { window.location.reload(); return; }
    var body = await res.json().catch(function () { return {}; });
    msg.textContent = body.error || "Sign in failed";
    if (body.retryAfter) { msg.className = "wait"; }
  } catch (e) {
    msg.textContent = "Connection error";
  }
  btn.disabled = false;
});
</script>
</body>
</html>
`

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Mission Control</title>
</head>
<body>
<h1>Mission Control</h1>
<form method="post" action="/api/memories/sync"><button type="submit">Sync now</button></form>
{{- range .}}
<h2>{{.Category}}</h2>
<ul>
{{- range .Memories}}
  <li><a href="/api/memories/{{.Slug}}?format=html">{{.Title}}</a> <small>{{.WordCount}} words · {{.UpdatedAt.Format "2006-01-02 15:04"}}</small></li>
{{- end}}
</ul>
{{- else}}
<p>No memories synced yet.</p>
{{- end}}
</body>
</html>
`))

var memoryTmpl = template.Must(template.New("memory").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} · Mission Control</title>
</head>
<body>
<p><a href="/">&larr; All memories</a></p>
{{.Body}}
</body>
</html>
`))
