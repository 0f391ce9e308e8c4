package startgg

const tournamentsQuery = `
query TournamentsQuery(
  $afterDate: Timestamp,
  $beforeDate: Timestamp,
  $countryCode: String,
  $addrState: String,
  $videogameIds: [ID],
  $perPage: Int,
  $page: Int
) {
  tournaments(
    query: {
      sortBy: "startAt asc",
      perPage: $perPage,
      page: $page,
      filter: {
        past: true,
        videogameIds: $videogameIds,
        countryCode: $countryCode,
        addrState: $addrState,
        afterDate: $afterDate,
        beforeDate: $beforeDate
      }
    }
  ) {
    pageInfo {
      total
      totalPages
      page
      perPage
    }
    nodes {
      id
      name
      url(relative: false, tab: "details")
      city
      countryCode
      addrState
      events(filter: {videogameId: $videogameIds, published: true}) {
        id
        name
        numEntrants
        slug
        startAt
        state
      }
    }
  }
}`

const eventSetsQuery = `
query EventSetsQuery(
  $eventId: ID,
  $perPage: Int,
  $page: Int
) {
  event(id: $eventId) {
    sets(
      page: $page,
      perPage: $perPage,
      sortType: RECENT,
      filters: {hideEmpty: true}
    ) {
      pageInfo {
        total
        totalPages
        page
        perPage
      }
      nodes {
        id
        slots {
          entrant {
            initialSeedNum
            participants {
              id
              player {
                id
                gamerTag
              }
            }
          }
          standing {
            stats {
              score {
                value
              }
            }
          }
        }
      }
    }
  }
}`
