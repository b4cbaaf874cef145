package service

// Built-in Worker script templates. Deployed as-is under a caller-chosen
// script name; the cache template is tuned for mostly-static CMS pages.

const cacheWorkerTemplate = `addEventListener('fetch', event => {
  event.respondWith(handleRequest(event))
})

async function handleRequest(event) {
  const request = event.request
  if (request.method !== 'GET') {
    return fetch(request)
  }

  const cache = caches.default
  let response = await cache.match(request)
  if (response) {
    const headers = new Headers(response.headers)
    headers.set('X-Worker-Cache', 'HIT')
    return new Response(response.body, { status: response.status, headers })
  }

  response = await fetch(request)
  if (response.status === 200) {
    const copy = response.clone()
    const headers = new Headers(copy.headers)
    headers.set('Cache-Control', 'public, max-age=300')
    event.waitUntil(cache.put(request, new Response(copy.body, { status: copy.status, headers })))
  }
  const headers = new Headers(response.headers)
  headers.set('X-Worker-Cache', 'MISS')
  return new Response(response.body, { status: response.status, headers })
}
`

const securityHeadersWorkerTemplate = `addEventListener('fetch', event => {
  event.respondWith(handleRequest(event.request))
})

async function handleRequest(request) {
  const response = await fetch(request)
  const headers = new Headers(response.headers)
  headers.set('X-Frame-Options', 'SAMEORIGIN')
  headers.set('X-Content-Type-Options', 'nosniff')
  headers.set('Referrer-Policy', 'strict-origin-when-cross-origin')
  headers.set('Permissions-Policy', 'camera=(), microphone=(), geolocation=()')
  headers.set('Strict-Transport-Security', 'max-age=31536000; includeSubDomains')
  return new Response(response.body, {
    status: response.status,
    statusText: response.statusText,
    headers
  })
}
`

const redirectWorkerTemplate = `addEventListener('fetch', event => {
  event.respondWith(handleRequest(event.request))
})

// Edit the map below, then redeploy. Keys are path prefixes.
const REDIRECTS = {
  '/old-blog': '/blog',
  '/feed.xml': '/feed'
}

async function handleRequest(request) {
  const url = new URL(request.url)
  for (const [from, to] of Object.entries(REDIRECTS)) {
    if (url.pathname === from || url.pathname.startsWith(from + '/')) {
      url.pathname = to + url.pathname.slice(from.length)
      return Response.redirect(url.toString(), 301)
    }
  }
  return fetch(request)
}
`

// WorkerTemplates maps template names to deployable scripts
var WorkerTemplates = map[string]string{
	"cache":            cacheWorkerTemplate,
	"security-headers": securityHeadersWorkerTemplate,
	"redirect":         redirectWorkerTemplate,
}
